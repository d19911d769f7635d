package persistence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruhsty/bruhsty/persistence"
)

const depositedEventType = "Deposited"

type deposited struct {
	AccountID  string
	Amount     int
	OccurredAt time.Time
}

func (e deposited) IsEventType() string      { return depositedEventType }
func (e deposited) HasOccurredAt() time.Time { return e.OccurredAt }

type account struct {
	persistence.Aggregate[string]
	balance int
}

func newAccount(id string) *account {
	return &account{Aggregate: persistence.NewAggregate(id)}
}

func (a *account) deposit(amount int, at time.Time) {
	a.balance += amount
	a.PushEvent(deposited{AccountID: a.AggregateID(), Amount: amount, OccurredAt: at})
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return baseTime.Add(time.Duration(seconds) * time.Second)
}

func Test_Aggregate_PopEvent_Returns_Oldest_First(t *testing.T) {
	acc := newAccount("a")
	acc.deposit(1, at(1))
	acc.deposit(2, at(2))
	acc.deposit(3, at(3))

	first, ok := acc.PopEvent()
	require.True(t, ok)
	assert.Equal(t, 1, first.(deposited).Amount)

	second, ok := acc.PopEvent()
	require.True(t, ok)
	assert.Equal(t, 2, second.(deposited).Amount)

	assert.Equal(t, 1, acc.PendingEvents())
}

func Test_Aggregate_PopEvent_When_Queue_Is_Empty(t *testing.T) {
	acc := newAccount("a")

	event, ok := acc.PopEvent()

	assert.False(t, ok)
	assert.Nil(t, event)
}

func Test_Aggregate_DrainEvents_Empties_The_Queue(t *testing.T) {
	acc := newAccount("a")
	acc.deposit(1, at(1))
	acc.deposit(2, at(2))

	events := acc.DrainEvents()

	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].(deposited).Amount)
	assert.Equal(t, 2, events[1].(deposited).Amount)
	assert.Zero(t, acc.PendingEvents())
	assert.Empty(t, acc.DrainEvents())
}

func Test_Aggregate_AggregateID(t *testing.T) {
	assert.Equal(t, "acc-1", newAccount("acc-1").AggregateID())
}

func Test_SortByOccurrence_Is_Stable(t *testing.T) {
	events := persistence.DomainEvents{
		deposited{Amount: 3, OccurredAt: at(3)},
		deposited{Amount: 1, OccurredAt: at(1)},
		deposited{Amount: 21, OccurredAt: at(2)},
		deposited{Amount: 22, OccurredAt: at(2)},
	}

	persistence.SortByOccurrence(events)

	amounts := make([]int, 0, len(events))
	for _, event := range events {
		amounts = append(amounts, event.(deposited).Amount)
	}

	assert.Equal(t, []int{1, 21, 22, 3}, amounts)
}

func Test_ToOccurredAt(t *testing.T) {
	local := time.Date(2025, 3, 1, 14, 0, 0, 123456789, time.FixedZone("X", 2*60*60))

	normalized := persistence.ToOccurredAt(local)

	assert.Equal(t, time.UTC, normalized.Location())
	assert.Equal(t, 123456000, normalized.Nanosecond())
	assert.True(t, normalized.Equal(local.Truncate(time.Microsecond)))
}
