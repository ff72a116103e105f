// Package health implements the relay's liveness, readiness and version
// endpoints.
//
// Liveness (/health) only proves the HTTP server is answering. Readiness
// (/ready) runs every registered check with a per-check timeout; the
// Connection Supervisor registers "backend_session", so a relay whose
// backend session is down reports 503 while still serving /health.
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("backend_session", supervisor.HealthCheck)
//	router.HandleFunc("/ready", checker.ReadinessHandler())
package health
