package service

import "errors"

var (
	ErrNotFound       = errors.New("error not found")
	ErrStockNotActive = errors.New("error stock is not active")

	ErrInsufficientInput       = errors.New("error insufficient input arguments")
	ErrInvalidNumericFormat    = errors.New("error invalid numeric format")
	ErrInvalidDate             = errors.New("error invalid date")
	ErrUnknownBrokerCredential = errors.New("error unknown broker credential")
	ErrUnknownPortfolio        = errors.New("error unknown portfolio")
	ErrAlreadySubscribed       = errors.New("error already subscribed")
	ErrNotPositive             = errors.New("error value is not positive")
	ErrNotEnoughStocks         = errors.New("error not enough stocks")
	ErrInvalidTicker           = errors.New("error invalid ticker")
	ErrNoSubscriptions         = errors.New("error no subscriptions")
)
