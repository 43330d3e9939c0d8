package config

// DefaultConfigYAML is the default configuration template written by
// `slsksticky init`. Every setting can also be supplied through the
// environment with the SLSKSTICKY_ prefix, e.g. SLSKSTICKY_SLSKD_API_KEY.
const DefaultConfigYAML = `# slsksticky configuration

# Gluetun control server
gluetun:
  host: "gluetun"
  port: 8000
  # Authentication: "apikey" (X-API-Key header) or "basic"
  auth_type: "apikey"
  api_key: ""
  username: ""
  password: ""
  # Per-request timeout in seconds; keep well under check_interval
  request_timeout: 10

# slskd daemon
slskd:
  host: "slskd"
  port: 5030
  # API key with the Administrator role. slskd must run with
  # SLSKD_REMOTE_CONFIGURATION=true for remote option updates.
  api_key: ""
  https: false
  verify_ssl: false
  request_timeout: 10

# Seconds between port checks
check_interval: 30

# Health snapshot sink
health:
  file: "/app/health/status.json"

# Optional status HTTP server (GET /api/v1/health)
api:
  enabled: false
  port: 8080

logging:
  level: "info"   # debug, info, warn, error
  format: "text"  # text, json
`
