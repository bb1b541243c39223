// Package config provides configuration management for the rekama server
// and rekamactl.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//   - Built-in defaults
//   - The YAML file $REKAMA_CONFIG_PATH/rekama.yml (default /etc/rekama)
//   - Environment variables
//
// Every attribute remembers which layer it came from; `rekamactl
// configuration show` prints them.
//
// # Key Configuration Options
//
//   - REKAMA_STORAGE_BACKEND: file, database or memory
//   - REKAMA_DATA_KEY: base64 AES-256 key sealing snapshots
//   - REKAMA_TOKEN_SECRET: HS256 secret for session tokens
//   - REKAMA_SESSION_IDLE_TIMEOUT: seconds before an idle session ends
//   - DATABASE_URL: database connection
//   - PORT: server listen port
package config
