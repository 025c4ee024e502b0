package detect

import (
	"testing"

	"github.com/teamyukt/honeynet/internal/config"
)

func testDetector() *Detector {
	return New(config.DetectionConfig{
		Threshold: 0.35,
		Weights: config.DetectionWeights{
			Keywords:      0.25,
			Tactics:       0.25,
			Composite:     0.20,
			Credentials:   0.15,
			Impersonation: 0.15,
		},
	})
}

func TestDetectUrgentBankThreat(t *testing.T) {
	d := testDetector()
	verdict := d.Detect("URGENT: Your bank account will be blocked! Share your OTP immediately to verify.")

	if !verdict.IsScam {
		t.Fatalf("expected scam verdict, got confidence %.2f", verdict.Confidence)
	}
	if verdict.Confidence <= 0.5 {
		t.Fatalf("expected high confidence, got %.2f", verdict.Confidence)
	}
	if verdict.Category != CategoryBanking {
		t.Fatalf("expected banking category, got %s", verdict.Category)
	}
	if len(verdict.Signals) == 0 {
		t.Fatal("expected contributing signals to be reported")
	}
}

func TestDetectBenignMessage(t *testing.T) {
	d := testDetector()
	verdict := d.Detect("Can we schedule a meeting tomorrow?")

	if verdict.IsScam {
		t.Fatalf("benign message classified as scam with confidence %.2f", verdict.Confidence)
	}
}

func TestDetectLotteryScam(t *testing.T) {
	d := testDetector()
	verdict := d.Detect("Congratulations! You have won a lottery prize of Rs 50,000. Claim now, last chance!")

	if !verdict.IsScam {
		t.Fatalf("expected scam verdict, got confidence %.2f", verdict.Confidence)
	}
	if verdict.Category != CategoryPrize {
		t.Fatalf("expected prize category, got %s", verdict.Category)
	}
}

func TestDetectEmptyMessage(t *testing.T) {
	d := testDetector()
	verdict := d.Detect("   ")

	if verdict.IsScam {
		t.Fatal("empty message must not be classified as scam")
	}
	if verdict.Category != CategoryGeneral {
		t.Fatalf("expected general category, got %s", verdict.Category)
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := testDetector()
	msg := "Your KYC is pending. Verify immediately or your account will be suspended."

	first := d.Detect(msg)
	for i := 0; i < 5; i++ {
		got := d.Detect(msg)
		if got.IsScam != first.IsScam || got.Confidence != first.Confidence || got.Category != first.Category {
			t.Fatalf("verdict changed across runs: %+v vs %+v", first, got)
		}
	}
}

func TestDetectCredentialPhishing(t *testing.T) {
	d := testDetector()
	verdict := d.Detect("Please share your OTP and CVV to confirm the refund.")

	if !verdict.IsScam {
		t.Fatalf("expected scam verdict, got confidence %.2f", verdict.Confidence)
	}
}
