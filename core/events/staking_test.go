package events

import (
	"math/big"
	"testing"
)

func testAddr(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func TestStakedEventAttributes(t *testing.T) {
	payload := Staked{
		Owner:        testAddr(0x0A),
		Amount:       big.NewInt(100_000),
		LockDuration: 604_800,
		Tier:         2,
		EarlyAdopter: true,
		Timestamp:    1_700_000_000,
	}
	if payload.EventType() != TypeStaked {
		t.Fatalf("unexpected event type: %s", payload.EventType())
	}
	evt := payload.Event()
	if evt.Type != TypeStaked {
		t.Fatalf("unexpected event type: %s", evt.Type)
	}
	if evt.Attributes["amount"] != "100000" {
		t.Fatalf("unexpected amount attribute: %s", evt.Attributes["amount"])
	}
	if evt.Attributes["lockDuration"] != "604800" {
		t.Fatalf("unexpected lockDuration attribute: %s", evt.Attributes["lockDuration"])
	}
	if evt.Attributes["earlyAdopter"] != "true" {
		t.Fatalf("unexpected earlyAdopter attribute: %s", evt.Attributes["earlyAdopter"])
	}
	if evt.Attributes["owner"] == "" {
		t.Fatalf("owner attribute must be set")
	}
}

func TestStakeAccountCreatedOmitsZeroReferrer(t *testing.T) {
	evt := StakeAccountCreated{Owner: testAddr(0x0A)}.Event()
	if _, ok := evt.Attributes["referrer"]; ok {
		t.Fatalf("zero referrer must be omitted")
	}

	evt = StakeAccountCreated{Owner: testAddr(0x0A), Referrer: testAddr(0x0B)}.Event()
	if evt.Attributes["referrer"] == "" {
		t.Fatalf("referrer attribute must be set")
	}
}

func TestPoolPauseChangedTypeFollowsDirection(t *testing.T) {
	paused := PoolPauseChanged{Authority: testAddr(0x01), Paused: true}
	if paused.EventType() != TypePoolPaused {
		t.Fatalf("unexpected type for pause: %s", paused.EventType())
	}
	unpaused := PoolPauseChanged{Authority: testAddr(0x01), Paused: false}
	if unpaused.EventType() != TypePoolUnpaused {
		t.Fatalf("unexpected type for unpause: %s", unpaused.EventType())
	}
	if paused.Event().Type != TypePoolPaused || unpaused.Event().Type != TypePoolUnpaused {
		t.Fatalf("event payload type must follow direction")
	}
}

func TestRewardsClaimedHandlesNilAmounts(t *testing.T) {
	evt := RewardsClaimed{Owner: testAddr(0x0A)}.Event()
	if evt.Attributes["owed"] != "0" {
		t.Fatalf("nil amounts must render as zero, got %s", evt.Attributes["owed"])
	}
}
