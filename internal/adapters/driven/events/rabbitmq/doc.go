// Package rabbitmq publishes terminal job events to a durable RabbitMQ
// queue so other processes can react when indexing or answer generation
// finishes.
package rabbitmq
