// Package config loads entityp settings from the environment, optionally seeded from a
// .env file, and builds the logger, gateway and repository options they describe.
//
// Variables, with defaults:
//
//	ENTITYP_DB_DRIVER              sqlite3 (or postgres)
//	ENTITYP_DB_DSN                 entityp.db
//	ENTITYP_DB_MAX_OPEN_CONNS      0 (unlimited)
//	ENTITYP_DB_CONN_MAX_LIFETIME   0 (forever)
//	ENTITYP_LOG_LEVEL              info
//	ENTITYP_LOG_DEVELOPMENT        false
//	ENTITYP_LITERAL_IDENTITY       false
package config
