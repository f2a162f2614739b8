package telephony

import (
	"encoding/xml"
	"fmt"
	"log"
)

// Voice settings for the provider's Say verb.
const (
	SayVoice    = "Polly.Amy-Neural"
	SayLanguage = "en-US"
)

// Say speaks text to the caller using the provider's TTS.
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Record captures caller speech and posts the result to the action URL. The
// transcription attributes are only set when the provider is the one
// transcribing; the capture pipeline otherwise handles the recording itself.
type Record struct {
	XMLName            xml.Name `xml:"Record"`
	Timeout            int      `xml:"timeout,attr"`
	Transcribe         bool     `xml:"transcribe,attr,omitempty"`
	TranscribeCallback string   `xml:"transcribeCallback,attr,omitempty"`
	Action             string   `xml:"action,attr,omitempty"`
	Method             string   `xml:"method,attr,omitempty"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// VoiceResponse renders verbs into a TwiML document.
func VoiceResponse(verbs ...any) string {
	doc, err := xml.Marshal(response{Verbs: verbs})
	if err != nil {
		// Verb structs contain nothing unmarshalable; reaching this means a
		// programming error, but the caller still needs valid TwiML.
		log.Printf("[telephony] twiml marshal failed: %v", err)
		return xml.Header + "<Response/>"
	}
	return xml.Header + string(doc)
}

// NewSay builds a Say verb with the standard voice.
func NewSay(text string) Say {
	return Say{Voice: SayVoice, Language: SayLanguage, Text: text}
}

func newRecord(callSID string, recordTimeout int, transcribe bool) Record {
	record := Record{
		Timeout: recordTimeout,
		Action:  fmt.Sprintf("/twilio/handle-recording/%s", callSID),
		Method:  "POST",
	}
	if transcribe {
		record.Transcribe = true
		record.TranscribeCallback = fmt.Sprintf("/twilio/transcription/%s", callSID)
	}
	return record
}

// SpeakAndRecord speaks text and then records the caller's answer. callSID
// is interpolated into the callback paths so the stateless webhooks can find
// the session again. transcribe requests the provider's own transcription;
// an utterance must only ever be processed by one path, so it stays off when
// the capture pipeline handles recordings.
func SpeakAndRecord(text, callSID string, recordTimeout int, transcribe bool) string {
	return VoiceResponse(NewSay(text), newRecord(callSID, recordTimeout, transcribe))
}

// ContinueRecording keeps the recording loop going without speaking. Used
// when the provider's transcription callback carries the dialogue and the
// recording webhook has nothing to say.
func ContinueRecording(callSID string, recordTimeout int) string {
	return VoiceResponse(newRecord(callSID, recordTimeout, true))
}

// SpeakAndHangup speaks text and ends the call.
func SpeakAndHangup(text string) string {
	return VoiceResponse(NewSay(text), Hangup{})
}
