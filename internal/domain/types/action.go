package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionSessionCreated   = "session_created"
	ActionSessionStarted   = "session_started"
	ActionSessionPaused    = "session_paused"
	ActionSessionResumed   = "session_resumed"
	ActionSessionStopped   = "session_stopped"
	ActionSessionDiscarded = "session_discarded"
	ActionSessionDropped   = "session_dropped"
	ActionSessionEvicted   = "session_evicted"
	ActionSourceFallback   = "source_fallback"

	ActionActivityCreated   = "activity_created"
	ActionActivityExported  = "activity_exported"
	ActionStandingRefreshed = "standing_refreshed"
	ActionLevelUp           = "level_up"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"
	ActionEventPublishFailed        = "event_publish_failed"
	ActionCacheFailed               = "cache_failed"
)
