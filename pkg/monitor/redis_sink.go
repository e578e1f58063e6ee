package monitor

import (
	"context"
	"encoding/json"

	"github.com/cuemby/gobjkernel/pkg/log"
	"github.com/redis/go-redis/v9"
)

// RedisSink publishes every notification as a JSON message on a single
// pub/sub channel, a reference implementation for shipping monitor and
// audit events off-process (spec.md §6 lists Redis among the pack's
// eligible transports for this sink).
type RedisSink struct {
	Client  *redis.Client
	Channel string
}

// NewRedisSink builds a sink publishing to channel over client.
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{Client: client, Channel: channel}
}

type redisMessage struct {
	Kind string         `json:"kind"`
	Body map[string]any `json:"body"`
}

func (r *RedisSink) publish(kind string, body map[string]any) {
	msg := redisMessage{Kind: kind, Body: body}
	encoded, err := json.Marshal(msg)
	if err != nil {
		log.WithComponent("monitor").Error().Err(err).Msg("redis sink encode failed")
		return
	}
	if err := r.Client.Publish(context.Background(), r.Channel, encoded).Err(); err != nil {
		log.WithComponent("monitor").Error().Err(err).Msg("redis sink publish failed")
	}
}

func (r *RedisSink) MonitorGobj(eventKind, gobjName string) {
	r.publish("monitor_gobj", map[string]any{"event_kind": eventKind, "gobj": gobjName})
}

func (r *RedisSink) MonitorEvent(kind, event, src, dst string) {
	r.publish("monitor_event", map[string]any{"kind": kind, "event": event, "src": src, "dst": dst})
}

func (r *RedisSink) AuditCommand(name string, kw map[string]any) {
	r.publish("audit_command", map[string]any{"name": name, "kw": kw})
}
