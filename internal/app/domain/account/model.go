package account

// Account is a registered user of the platform. The password is stored and
// compared verbatim; hashing is deliberately out of scope for this service.
type Account struct {
	ID       int64  `json:"account_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 4
