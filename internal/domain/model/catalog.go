package model

// Country is a numbering region available for lease.
type Country struct {
	ID        string
	Name      string
	Code      string
	Price     int64
	Available bool
}

// Service is a target service a leased number can receive codes for.
type Service struct {
	ID        string
	Name      string
	Price     int64
	Available bool
}
