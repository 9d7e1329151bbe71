package device_test

import (
	"testing"

	"github.com/rcornwell/cdc6000/device"
)

// mockDevice is a minimal Device used to exercise the slot/registry
// contract without pulling in a real peripheral.
type mockDevice struct {
	accept     uint16
	ioCalls    int
	activated  bool
	discoed    bool
	lastStatus uint16
}

func (d *mockDevice) Func(code uint16) device.FuncResult {
	switch code {
	case d.accept:
		return device.Accepted
	case 0o77:
		return device.Processed
	default:
		return device.Declined
	}
}

func (d *mockDevice) IO(ch *device.Channel) {
	d.ioCalls++
	ch.Data = 0o42
	ch.Full = true
}

func (d *mockDevice) Activate() { d.activated = true }

func (d *mockDevice) Disconnect() { d.discoed = true }

// I1: after any Func returning Accepted, slot.FCode != 0 until Disconnect.
func TestInvariantFCodeLatchedUntilDisconnect(t *testing.T) {
	dev := &mockDevice{accept: 0o05}
	slot := &device.Slot{Dev: dev, Channel: &device.Channel{ID: 0}}

	if result := slot.Func(0o05); result != device.Accepted {
		t.Fatalf("Func: got %v, want Accepted", result)
	}
	if slot.FCode == 0 {
		t.Fatalf("FCode not latched after Accepted")
	}

	slot.IO()
	if slot.FCode == 0 {
		t.Fatalf("FCode cleared before Disconnect")
	}

	slot.Disconnect()
	if slot.FCode != 0 {
		t.Fatalf("FCode not cleared after Disconnect: %#o", slot.FCode)
	}
	if !dev.discoed {
		t.Fatalf("Disconnect not forwarded to device")
	}
}

func TestFuncProcessedDoesNotLatch(t *testing.T) {
	dev := &mockDevice{accept: 0o05}
	slot := &device.Slot{Dev: dev, Channel: &device.Channel{ID: 0}}

	if result := slot.Func(0o77); result != device.Processed {
		t.Fatalf("Func: got %v, want Processed", result)
	}
	if slot.FCode != 0 {
		t.Fatalf("Processed code should not latch, got FCode=%#o", slot.FCode)
	}
}

func TestFuncDeclined(t *testing.T) {
	dev := &mockDevice{accept: 0o05}
	slot := &device.Slot{Dev: dev, Channel: &device.Channel{ID: 0}}

	if result := slot.Func(0o11); result != device.Declined {
		t.Fatalf("Func: got %v, want Declined", result)
	}
}

func TestRegistryAddAndLookup(t *testing.T) {
	reg := device.NewRegistry()
	dev := &mockDevice{accept: 0o05}
	slot := &device.Slot{Dev: dev}

	if err := reg.AddDevice(3, 0o2, "MOCK", slot); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	got := reg.Lookup(3, 0o2)
	if got != slot {
		t.Fatalf("Lookup returned wrong slot")
	}
	if got.Channel == nil || got.Channel.ID != 3 {
		t.Fatalf("slot channel not wired to registry channel id")
	}
	if got.DeviceType != "MOCK" {
		t.Fatalf("slot DeviceType = %q, want %q", got.DeviceType, "MOCK")
	}
	if got.UnitNo != 0 || got.SelectedUnit != 0 {
		t.Fatalf("slot UnitNo/SelectedUnit = %d/%d, want 0/0", got.UnitNo, got.SelectedUnit)
	}

	if miss := reg.Lookup(3, 0o3); miss != nil {
		t.Fatalf("Lookup of unoccupied slot returned non-nil")
	}
}

func TestRegistryDuplicateRejected(t *testing.T) {
	reg := device.NewRegistry()
	first := &device.Slot{Dev: &mockDevice{}}
	second := &device.Slot{Dev: &mockDevice{}}

	if err := reg.AddDevice(1, 0, "MOCK", first); err != nil {
		t.Fatalf("first AddDevice: %v", err)
	}
	if err := reg.AddDevice(1, 0, "MOCK", second); err == nil {
		t.Fatalf("duplicate AddDevice should have failed")
	}
}

// Step drives a function call while no code is latched, then switches
// to pumping IO cycles once the device accepts one, matching the
// func-then-IO-cycles shape of a PP transaction.
func TestStepDrivesFuncThenIO(t *testing.T) {
	dev := &mockDevice{accept: 0o05}
	slot := &device.Slot{Dev: dev, Channel: &device.Channel{ID: 0}}
	ch := &device.Channel{ID: 0}

	if result := device.Step(ch, slot, 0o05); result != device.Accepted {
		t.Fatalf("Step: got %v, want Accepted", result)
	}
	if slot.FCode == 0 {
		t.Fatalf("FCode not latched after Step accepted the function")
	}

	for i := 0; i < 3; i++ {
		if result := device.Step(ch, slot, 0o05); result != device.Processed {
			t.Fatalf("Step: got %v, want Processed while FCode latched", result)
		}
	}
	if dev.ioCalls != 3 {
		t.Fatalf("ioCalls = %d, want 3", dev.ioCalls)
	}
	if !ch.Full || ch.Data != 0o42 {
		t.Fatalf("Step did not drive the passed-in channel, got Data=%#o Full=%v", ch.Data, ch.Full)
	}

	slot.Disconnect()
	if result := device.Step(ch, slot, 0o11); result != device.Declined {
		t.Fatalf("Step: got %v, want Declined for an unrecognized code after Disconnect", result)
	}
}

func TestParseChanEq(t *testing.T) {
	cases := []struct {
		in      string
		channel int
		eqNo    uint8
		wantErr bool
	}{
		{"0,0", 0, 0, false},
		{"17,7", 15, 7, false},
		{" 3 , 2 ", 3, 2, false},
		{"bogus", 0, 0, true},
		{"3", 0, 0, true},
		{"99,0", 0, 0, true},
	}
	for _, c := range cases {
		channel, eqNo, err := device.ParseChanEq(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseChanEq(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChanEq(%q): unexpected error %v", c.in, err)
			continue
		}
		if channel != c.channel || eqNo != c.eqNo {
			t.Errorf("ParseChanEq(%q) = (%d, %d), want (%d, %d)", c.in, channel, eqNo, c.channel, c.eqNo)
		}
	}
}
