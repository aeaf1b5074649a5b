package domain

// User is the identity record resolved for chat participants.
type User struct {
	ID               int64
	LoginID          string
	UserName         string
	ProfileImagePath *string
}
