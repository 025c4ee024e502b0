package extract

import (
	"reflect"
	"testing"

	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/model/intel"
)

func testExtractor() *Extractor {
	return New(config.ExtractionConfig{
		ProviderSuffixes: []string{"paytm", "phonepe", "gpay", "upi", "okaxis", "ybl"},
		ShortenerDomains: []string{"bit.ly", "tinyurl.com"},
		LinkTLDs:         []string{"com", "net", "org", "in", "co.in"},
		ContextWindow:    5,
	}, nil)
}

func TestExtractPhoneVariants(t *testing.T) {
	e := testExtractor()
	cases := []struct {
		in   string
		want string
	}{
		{"Call me at 9876543210 now", "9876543210"},
		{"My number is +91-9876543210", "9876543210"},
		{"Reach 919876543210 for help", "9876543210"},
		{"Dial 09876543210 urgently", "9876543210"},
	}
	for _, tc := range cases {
		got := e.Extract(tc.in)
		phones := got[intel.TypePhone]
		if len(phones) != 1 || phones[0] != tc.want {
			t.Fatalf("input %q: expected phone [%s], got %v", tc.in, tc.want, phones)
		}
	}
}

func TestExtractRejectsInvalidPhone(t *testing.T) {
	e := testExtractor()
	got := e.Extract("code 1234567890 is your reference")
	if len(got[intel.TypePhone]) != 0 {
		t.Fatalf("digits starting below 6 must not be a phone, got %v", got[intel.TypePhone])
	}
}

func TestExtractHandleVersusEmail(t *testing.T) {
	e := testExtractor()
	got := e.Extract("Pay to scammer@paytm or write to fraud.desk@example.com")

	if handles := got[intel.TypePaymentHandle]; len(handles) != 1 || handles[0] != "scammer@paytm" {
		t.Fatalf("expected payment handle [scammer@paytm], got %v", handles)
	}
	if emails := got[intel.TypeEmail]; len(emails) != 1 || emails[0] != "fraud.desk@example.com" {
		t.Fatalf("expected email [fraud.desk@example.com], got %v", emails)
	}
}

func TestExtractHandleNeverDoubleClassified(t *testing.T) {
	e := testExtractor()
	got := e.Extract("send to victim@okaxis today")

	if len(got[intel.TypeEmail]) != 0 {
		t.Fatalf("dotless token classified as email: %v", got[intel.TypeEmail])
	}
	if len(got[intel.TypePaymentHandle]) != 1 {
		t.Fatalf("expected exactly one handle, got %v", got[intel.TypePaymentHandle])
	}
}

func TestExtractAccountAndRouting(t *testing.T) {
	e := testExtractor()
	got := e.Extract("Deposit to account 123456789012 IFSC SBIN0001234")

	if accts := got[intel.TypeBankAccount]; len(accts) != 1 || accts[0] != "123456789012" {
		t.Fatalf("expected account [123456789012], got %v", accts)
	}
	if codes := got[intel.TypeRoutingCode]; len(codes) != 1 || codes[0] != "SBIN0001234" {
		t.Fatalf("expected routing [SBIN0001234], got %v", codes)
	}
}

func TestExtractAccountExcludesPhoneShaped(t *testing.T) {
	e := testExtractor()
	got := e.Extract("transfer to 9876543210 right away")

	if len(got[intel.TypeBankAccount]) != 0 {
		t.Fatalf("mobile number misclassified as account: %v", got[intel.TypeBankAccount])
	}
	if len(got[intel.TypePhone]) != 1 {
		t.Fatalf("expected the number as a phone, got %v", got[intel.TypePhone])
	}
}

func TestExtractURLs(t *testing.T) {
	e := testExtractor()
	got := e.Extract("Verify at https://secure-bank.fake/login or bit.ly/a1b2c3")

	urls := got[intel.TypeURL]
	if len(urls) != 2 {
		t.Fatalf("expected two links, got %v", urls)
	}
}

func TestExtractDeobfuscation(t *testing.T) {
	e := testExtractor()
	got := e.Extract("mail me on support[at]fraudmail[dot]com")

	if emails := got[intel.TypeEmail]; len(emails) != 1 || emails[0] != "support@fraudmail.com" {
		t.Fatalf("expected deobfuscated email, got %v", emails)
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := testExtractor()
	msg := "I am Rakesh from SBI, call 9876543210, pay fee to scammer@paytm"

	first := e.Extract(msg)
	second := e.Extract(msg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not idempotent: %v vs %v", first, second)
	}
}

func TestExtractWithContextUnions(t *testing.T) {
	e := testExtractor()
	history := []string{"My number is 9876543210", "nothing here"}
	got := e.ExtractWithContext("Also pay scammer@ybl", history)

	if len(got[intel.TypePhone]) != 1 {
		t.Fatalf("expected phone from history window, got %v", got[intel.TypePhone])
	}
	if len(got[intel.TypePaymentHandle]) != 1 {
		t.Fatalf("expected handle from current message, got %v", got[intel.TypePaymentHandle])
	}
}

func TestExtractEmptyInput(t *testing.T) {
	e := testExtractor()
	got := e.Extract("   ")
	if !got.Empty() {
		t.Fatalf("expected empty extraction, got %v", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "9876543210", true},
		{"+91 98765 43210", "9876543210", true},
		{"09876543210", "9876543210", true},
		{"919876543210", "9876543210", true},
		{"1234567890", "", false},
		{"98765", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizePhone(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("normalizePhone(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
