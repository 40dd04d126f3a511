package rabbitmq

// QueueConfig очередь и ключи маршрутизации, с которыми она привязывается к exchange.
type QueueConfig struct {
	QueueName   string
	RoutingKeys []string
}
