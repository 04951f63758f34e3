package config

// EnvPrefix is passed to envconfig; individual tags carry the full
// BRANDBEAM_ name so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BRANDBEAM_DB_DSN"
	EnvDBHost = "BRANDBEAM_DB_HOST"
	EnvDBUser = "BRANDBEAM_DB_USER"
	EnvDBName = "BRANDBEAM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
