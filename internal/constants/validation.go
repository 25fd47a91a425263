package constants

// Token Settings
const (
	TokenKeyBytes       = 20 // hex encoded to a 40 character key
	WalletIDMaxAttempts = 5
)

// Customer sex_tape choices
const (
	SexMale   = "Male"
	SexFemale = "Female"
)

// Validation Patterns
const (
	UsernamePattern = `^[\w.@+-]+$`
)

// Field level messages
const (
	MsgUsernameExists    = "A user with that username already exists."
	MsgEmailExists       = "already exists"
	MsgPasswordsMismatch = "Does not match"
	MsgDNIExists         = "customer with this dni already exists."
	MsgCustomerEmailUsed = "User with this email already exists."
	MsgWalletIDExists    = "customer with this wallet id already exists."
)
