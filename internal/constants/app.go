package constants

const AppVersion = "1.0.0"

// Environment Types
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Cache Key Prefixes
const (
	CacheKeyPrefix   = "custsvc:"
	CacheKeyCustomer = CacheKeyPrefix + "customer:"
)
