package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/bankoffice-system/internal/model"
)

// Deposit зачисляет сумму на счёт и добавляет запись в журнал транзакций.
// Все проверки выполняются строго до изменения баланса: механизма отката
// нет, порядок «проверил — применил» и есть гарантия корректности.
func (s *Service) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.store.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}

	account.Balance = account.Balance.Add(amount)
	if err := s.store.SaveAccounts(ctx, *account); err != nil {
		return fmt.Errorf("commit deposit: %w", err)
	}

	return s.appendTransaction(ctx, accountNumber, "", amount, model.TransactionDeposit)
}

// Withdraw списывает сумму со счёта. Баланс не может стать отрицательным:
// недостаток средств отклоняется до каких-либо изменений.
func (s *Service) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.store.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}

	if account.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	account.Balance = account.Balance.Sub(amount)
	if err := s.store.SaveAccounts(ctx, *account); err != nil {
		return fmt.Errorf("commit withdrawal: %w", err)
	}

	return s.appendTransaction(ctx, accountNumber, "", amount, model.TransactionWithdrawal)
}

// Transfer переводит сумму между двумя счетами. Оба новых баланса
// фиксируются одним коммитом набора счетов, поэтому состояния «деньги
// списаны, но не зачислены» на диске не существует.
func (s *Service) Transfer(ctx context.Context, sourceNumber, targetNumber string, amount decimal.Decimal) error {
	if sourceNumber == targetNumber {
		return ErrSameAccount
	}
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := s.store.GetAccountByNumber(ctx, sourceNumber)
	if err != nil {
		return err
	}
	target, err := s.store.GetAccountByNumber(ctx, targetNumber)
	if err != nil {
		return err
	}

	if source.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	source.Balance = source.Balance.Sub(amount)
	target.Balance = target.Balance.Add(amount)

	if err := s.store.SaveAccounts(ctx, *source, *target); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}

	return s.appendTransaction(ctx, sourceNumber, targetNumber, amount, model.TransactionTransfer)
}

func (s *Service) appendTransaction(ctx context.Context, source, target string, amount decimal.Decimal, txType model.TransactionType) error {
	tx := model.Transaction{
		ID:        uuid.NewString(),
		Source:    &source,
		Amount:    amount,
		Type:      txType,
		CreatedAt: time.Now().UTC(),
	}
	if target != "" {
		tx.Target = &target
	}

	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// GetAccountsByUser возвращает счета, принадлежащие пользователю.
func (s *Service) GetAccountsByUser(ctx context.Context, userID string) ([]model.Account, error) {
	return s.store.GetAccountsByUser(ctx, userID)
}

// GetBalance возвращает текущий баланс счёта.
func (s *Service) GetBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	account, err := s.store.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return account.Balance, nil
}

// GetTransactionsByAccount возвращает историю операций по счёту.
func (s *Service) GetTransactionsByAccount(ctx context.Context, accountNumber string) ([]model.Transaction, error) {
	return s.store.GetTransactionsByAccount(ctx, accountNumber)
}
