package config

import (
	"firehorse/global"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func initRabbit() {
	url := AppConfig.RabbitMQ.Url
	if url == "" {
		global.Logger.Info("rabbitmq url empty, skipping rabbit init")
		return
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		global.Logger.Warn("Failed to connect to RabbitMQ, events disabled", zap.Error(err))
		return
	}

	ch, err := conn.Channel()
	if err != nil {
		global.Logger.Warn("Failed to open RabbitMQ channel, events disabled", zap.Error(err))
		_ = conn.Close()
		return
	}

	qname := AppConfig.RabbitMQ.Queue
	if _, err := ch.QueueDeclare(qname, true, false, false, false, nil); err != nil {
		global.Logger.Warn("Failed to declare RabbitMQ queue, events disabled", zap.String("queue", qname), zap.Error(err))
		_ = ch.Close()
		_ = conn.Close()
		return
	}

	global.RabbitConn = conn
	global.RabbitChannel = ch
	global.Logger.Info("RabbitMQ initialized", zap.String("queue", qname))
}

// Close 释放外部连接
func Close() {
	if global.RabbitChannel != nil {
		_ = global.RabbitChannel.Close()
	}
	if global.RabbitConn != nil {
		_ = global.RabbitConn.Close()
	}
	if global.RedisDB != nil {
		_ = global.RedisDB.Close()
	}
	if global.Db != nil {
		if sqlDB, err := global.Db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = global.Logger.Sync()
}
