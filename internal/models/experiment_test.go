package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testExperiment(split float64) *ExperimentDoc {
	now := time.Now()
	return &ExperimentDoc{
		ID:           primitive.NewObjectID(),
		Name:         "exp",
		AlgorithmA:   AlgoHybrid,
		AlgorithmB:   AlgoTrending,
		TrafficSplit: split,
		StartDate:    now.Add(-time.Hour),
		EndDate:      now.Add(time.Hour),
		IsActive:     true,
	}
}

func TestIsRunning(t *testing.T) {
	exp := testExperiment(0.5)
	now := time.Now()

	if !exp.IsRunning(now) {
		t.Error("should be running inside the window")
	}
	if exp.IsRunning(exp.StartDate.Add(-time.Minute)) {
		t.Error("should not run before the start")
	}
	if exp.IsRunning(exp.EndDate.Add(time.Minute)) {
		t.Error("should not run after the end")
	}

	exp.IsActive = false
	if exp.IsRunning(now) {
		t.Error("inactive experiment should not run")
	}
}

func TestAlgorithmForUser(t *testing.T) {
	now := time.Now()

	t.Run("stable across calls", func(t *testing.T) {
		exp := testExperiment(0.5)
		first := exp.AlgorithmForUser(42, now)
		for i := 0; i < 10; i++ {
			if got := exp.AlgorithmForUser(42, now); got != first {
				t.Fatalf("assignment flapped: %q then %q", first, got)
			}
		}
	})

	t.Run("outside the window assigns the control arm", func(t *testing.T) {
		exp := testExperiment(0.9)
		if got := exp.AlgorithmForUser(42, exp.EndDate.Add(time.Hour)); got != exp.AlgorithmA {
			t.Errorf("got %q, want control %q", got, exp.AlgorithmA)
		}
	})

	t.Run("a user in B at a low split stays in B at a higher split", func(t *testing.T) {
		low := testExperiment(0.1)
		high := testExperiment(0.9)
		// mismo bucket para ambos solo si comparten id
		high.ID = low.ID

		for user := 0; user < 200; user++ {
			if low.AlgorithmForUser(user, now) == low.AlgorithmB {
				if high.AlgorithmForUser(user, now) != high.AlgorithmB {
					t.Fatalf("user %d left B when the split grew", user)
				}
			}
		}
	})

	t.Run("buckets match the full md5 digest mod 100", func(t *testing.T) {
		// valores de referencia: int(md5("507f1f77bcf86cd799439011_{uid}")
		// .hexdigest(), 16) % 100, calculados aparte
		id, err := primitive.ObjectIDFromHex("507f1f77bcf86cd799439011")
		if err != nil {
			t.Fatal(err)
		}
		exp := testExperiment(0.5)
		exp.ID = id

		wantB := map[int]bool{
			0:      true,  // bucket 27
			1:      false, // bucket 68
			2:      false, // bucket 96
			3:      false, // bucket 64
			4:      false, // bucket 87
			5:      true,  // bucket 45
			42:     false, // bucket 60
			99:     false, // bucket 85
			1000:   true,  // bucket 13
			123456: true,  // bucket 8
		}
		for user, b := range wantB {
			want := exp.AlgorithmA
			if b {
				want = exp.AlgorithmB
			}
			if got := exp.AlgorithmForUser(user, now); got != want {
				t.Errorf("user %d: got %q, want %q", user, got, want)
			}
		}

		// el bucket de user 42 es exactamente 60: A con split 0.60
		// (60/100 no es < 0.60), B con split 0.61
		exp.TrafficSplit = 0.60
		if got := exp.AlgorithmForUser(42, now); got != exp.AlgorithmA {
			t.Errorf("split 0.60: got %q, want %q", got, exp.AlgorithmA)
		}
		exp.TrafficSplit = 0.61
		if got := exp.AlgorithmForUser(42, now); got != exp.AlgorithmB {
			t.Errorf("split 0.61: got %q, want %q", got, exp.AlgorithmB)
		}
	})

	t.Run("split distributes users to both arms", func(t *testing.T) {
		exp := testExperiment(0.5)
		var b int
		for user := 0; user < 500; user++ {
			if exp.AlgorithmForUser(user, now) == exp.AlgorithmB {
				b++
			}
		}
		// hash determinístico: solo verificamos que reparte, no la
		// proporción exacta
		if b == 0 || b == 500 {
			t.Errorf("all 500 users on one arm (b=%d)", b)
		}
	})
}
