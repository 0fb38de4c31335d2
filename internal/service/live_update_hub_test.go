package service

import (
	"context"
	"encoding/json"
	"testing"
	"work_readiness_backend/internal/readiness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveUpdateHubDeliversToTargetOnly(t *testing.T) {
	hub := NewLiveUpdateHub(nil)
	leader := NewSubscriber(hub, nil, "leader-1")
	leaderTab := NewSubscriber(hub, nil, "leader-1")
	other := NewSubscriber(hub, nil, "leader-2")
	hub.Register(leader)
	hub.Register(leaderTab)
	hub.Register(other)
	assert.Equal(t, 2, hub.Count("leader-1"))

	hub.NotifyCycleUpdate(context.Background(), "leader-1", CycleUpdate{
		WorkerID:   "worker-1",
		Event:      "submission",
		Transition: string(readiness.SubmissionContinued),
		Cycle:      readiness.CycleState{CycleStart: "2026-10-12", CurrentDay: 2, StreakDays: 2},
	})

	for _, sub := range []*Subscriber{leader, leaderTab} {
		require.Len(t, sub.Send, 1)
		var msg struct {
			Type string      `json:"type"`
			Data CycleUpdate `json:"data"`
		}
		require.NoError(t, json.Unmarshal(<-sub.Send, &msg))
		assert.Equal(t, MessageCycleUpdate, msg.Type)
		assert.Equal(t, "worker-1", msg.Data.WorkerID)
		assert.Equal(t, 2, msg.Data.Cycle.CurrentDay)
	}
	assert.Len(t, other.Send, 0)
}

func TestLiveUpdateHubRemove(t *testing.T) {
	hub := NewLiveUpdateHub(nil)
	sub := NewSubscriber(hub, nil, "leader-1")
	hub.Register(sub)

	hub.Remove(sub)
	hub.Remove(sub)
	assert.Equal(t, 0, hub.Count("leader-1"))
	_, open := <-sub.Send
	assert.False(t, open)

	// 没有订阅者时广播不阻塞
	hub.Broadcast(context.Background(), []string{"leader-1"}, WSMessage{Type: "PING"})
}

func TestLiveUpdateHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewLiveUpdateHub(nil)
	sub := NewSubscriber(hub, nil, "leader-1")
	hub.Register(sub)

	for i := 0; i < cap(sub.Send)+10; i++ {
		hub.Broadcast(context.Background(), []string{"leader-1"}, WSMessage{Type: "PING"})
	}
	assert.Equal(t, cap(sub.Send), len(sub.Send))

	hub.Stop()
	assert.Equal(t, 0, hub.Count("leader-1"))
}
