package session

import "github.com/tech-arch1tect/rememberme/config"

// SessionConfig exposes the manager's unexported config to external tests.
func SessionConfig(m *Manager) config.SessionConfig { return m.config }
