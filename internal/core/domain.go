package core

import (
	"errors"
	"strings"
	"time"
)

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

type (
	// Direction marks whether a transaction increases (IN) or decreases (OUT)
	// an account's value.
	Direction string

	Money struct {
		Cents int64
	}

	Account struct {
		ID         int64
		Owner      string
		Name       string
		Balance    Money
		MinBalance Money
		CreatedAt  time.Time
	}

	Transaction struct {
		ID            int64
		Owner         string
		Date          time.Time
		Direction     Direction
		Amount        Money
		AccountID     int64
		Description   string
		PaymentMethod string
		// Category may hold several comma-joined labels, e.g. "Food, Travel".
		Category string
	}

	Budget struct {
		ID        int64
		AccountID int64
		Category  string
		Allocated Money
		// Spent is derived at read time from matching OUT transactions.
		Spent Money
	}

	// TransactionFilter narrows a transaction listing. Zero values mean
	// "no constraint"; provided filters compose with logical AND.
	TransactionFilter struct {
		AccountID int64
		Start     time.Time
		End       time.Time // inclusive
		Direction Direction
		Category  string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidAccount   = errors.New("invalid account")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyPassword    = errors.New("empty password")
)

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if a.Balance.Cents < 0 || a.MinBalance.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Direction.Valid() {
		return ErrInvalidDirection
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.AccountID <= 0 {
		return ErrInvalidAccount
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyName
	}
	if b.AccountID <= 0 {
		return ErrInvalidAccount
	}
	if b.Allocated.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
