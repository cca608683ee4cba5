package config

const (
	EnvPrefix = "CHARMCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "CHARMCART_APP_ENV"
	EnvPort   = "CHARMCART_APP_PORT"

	EnvDBDSN  = "CHARMCART_DB_DSN"
	EnvDBHost = "CHARMCART_DB_HOST"
	EnvDBUser = "CHARMCART_DB_USER"
	EnvDBName = "CHARMCART_DB_NAME"

	EnvRedisURL = "CHARMCART_REDIS_URL"

	EnvCartMaxQtyPerItem = "CHARMCART_CART_MAX_QTY_PER_ITEM"
	EnvCartMaxLineItems  = "CHARMCART_CART_MAX_LINE_ITEMS"
	EnvCartTaxRate       = "CHARMCART_CART_TAX_RATE"

	EnvUseSQLite     = "CHARMCART_USE_SQLITE"
	EnvForwardEvents = "CHARMCART_FORWARD_EVENTS"
	EnvGCPProjectID  = "CHARMCART_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
