package config

// EnvPrefix scopes all envconfig lookups to AMART_* variables.
const EnvPrefix = "AMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "AMART_DB_DSN"
	EnvDBHost = "AMART_DB_HOST"
	EnvDBUser = "AMART_DB_USER"
	EnvDBName = "AMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
