package telephony

import (
	"strings"
	"testing"
)

func TestSpeakAndRecordWithProviderTranscription(t *testing.T) {
	twiml := SpeakAndRecord("Hello caller", "CA1", 10, true)

	for _, want := range []string{
		"<Response>",
		`<Say voice="Polly.Amy-Neural" language="en-US">Hello caller</Say>`,
		`transcribeCallback="/twilio/transcription/CA1"`,
		`action="/twilio/handle-recording/CA1"`,
		`timeout="10"`,
		`transcribe="true"`,
	} {
		if !strings.Contains(twiml, want) {
			t.Fatalf("twiml missing %s:\n%s", want, twiml)
		}
	}
	if strings.Contains(twiml, "<Hangup") {
		t.Fatalf("record response must not hang up:\n%s", twiml)
	}
}

func TestSpeakAndRecordWithoutProviderTranscription(t *testing.T) {
	twiml := SpeakAndRecord("Hello caller", "CA1", 10, false)

	if strings.Contains(twiml, "transcribe") {
		t.Fatalf("transcription attributes must be absent:\n%s", twiml)
	}
	if !strings.Contains(twiml, `action="/twilio/handle-recording/CA1"`) {
		t.Fatalf("twiml missing action:\n%s", twiml)
	}
}

func TestContinueRecording(t *testing.T) {
	twiml := ContinueRecording("CA1", 10)

	if strings.Contains(twiml, "<Say") {
		t.Fatalf("continue-recording response must not speak:\n%s", twiml)
	}
	for _, want := range []string{
		`transcribeCallback="/twilio/transcription/CA1"`,
		`action="/twilio/handle-recording/CA1"`,
	} {
		if !strings.Contains(twiml, want) {
			t.Fatalf("twiml missing %s:\n%s", want, twiml)
		}
	}
}

func TestSpeakAndHangup(t *testing.T) {
	twiml := SpeakAndHangup("Goodbye")

	if !strings.Contains(twiml, ">Goodbye</Say>") {
		t.Fatalf("twiml missing say verb:\n%s", twiml)
	}
	if !strings.Contains(twiml, "<Hangup") {
		t.Fatalf("twiml missing hangup verb:\n%s", twiml)
	}
}

func TestTwiMLEscapesText(t *testing.T) {
	twiml := SpeakAndHangup(`Tom & Jerry say "hi" <now>`)

	if strings.Contains(twiml, "<now>") {
		t.Fatalf("unescaped markup leaked into twiml:\n%s", twiml)
	}
	if !strings.Contains(twiml, "Tom &amp; Jerry") {
		t.Fatalf("ampersand not escaped:\n%s", twiml)
	}
}
