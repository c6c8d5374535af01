package tests

import "time"

const (
	NonExistingIntegerID = 9999
	NonExistingStringID  = "n0n-3x1st1ng-1d"
	DefaultCustomerName  = "Alice"
	AnotherCustomerName  = "Bob"
	DefaultCustomerEmail = "alice@example.org"
	AnotherCustomerEmail = "bob@example.org"
	DefaultRequestID     = "d3f4u17-r3qu35t-1d"
	ShortTimeout         = 100 * time.Millisecond
)
