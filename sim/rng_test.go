package sim

import (
	"math"
	"testing"
)

func TestRunKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewRunKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewRunKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewRunKey(42))
	rng2 := NewPartitionedRNG(NewRunKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemFlowControl).Float64()
		v2 := rng2.ForSubsystem(SubsystemFlowControl).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from subsystem A doesn't affect subsystem B
	rngA := NewPartitionedRNG(NewRunKey(42))
	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemModule("progress")).Float64()
	}
	got := rngA.ForSubsystem(SubsystemFlowControl).Float64()

	fresh := NewPartitionedRNG(NewRunKey(42))
	want := fresh.ForSubsystem(SubsystemFlowControl).Float64()

	if got != want {
		t.Errorf("flow-control first value = %v, want %v (isolation broken)", got, want)
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewRunKey(42))
	if rng.ForSubsystem(SubsystemFlowControl) != rng.ForSubsystem(SubsystemFlowControl) {
		t.Error("ForSubsystem returned different instances for same name")
	}
	if len(rng.subsystems) != 1 {
		t.Errorf("have %d subsystems, want 1", len(rng.subsystems))
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	rng := NewPartitionedRNG(NewRunKey(12345))
	if rng.Key() != RunKey(12345) {
		t.Errorf("Key() = %v, want 12345", rng.Key())
	}
}

func TestFnv1a64_NoCollisionOnSubsystemNames(t *testing.T) {
	names := []string{
		SubsystemFlowControl,
		SubsystemModule("progress"),
		SubsystemModule("series"),
		"",
	}
	hashes := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestSubsystemModule(t *testing.T) {
	if got := SubsystemModule("progress"); got != "module_progress" {
		t.Errorf("SubsystemModule(progress) = %q", got)
	}
}
