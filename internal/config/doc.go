// Package config loads offercrm settings.
//
// # Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--backend, --locale, --log-level)
//  2. Environment variables (AIRTABLE_*, NOTION_*, OFFERCRM_*)
//  3. A .env file in the working directory (or --env-file)
//  4. The YAML file (.offercrm.yaml in the working directory or
//     ~/.config/offercrm/.offercrm.yaml, or --config)
//  5. Hardcoded defaults
//
// # Backends
//
// Only the selected backend's section is validated:
//
//   - airtable: AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_TABLE_NAME
//   - notion: NOTION_TOKEN, NOTION_DB_ID
//   - sqlite: OFFERCRM_SQLITE_PATH
//
// Missing values are reported together in a single *ConfigurationError.
//
// # Other environment variables
//
//   - OFFERCRM_BACKEND: airtable, notion or sqlite
//   - OFFERCRM_CACHE_TTL, OFFERCRM_TIMEOUT: Go durations ("60s", "15s")
//   - OFFERCRM_LOCALE: month names in weekly charts (en, fr)
//   - OFFERCRM_LOG_LEVEL, OFFERCRM_LOG_FORMAT, OFFERCRM_LOG_FILE
package config
