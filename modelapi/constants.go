package modelapi

// Voices and models used by the speech backends when the request does not name one.
const (
	GOOGLE_KOREAN_VOICE  = "ko-KR-Wavenet-A"
	CARTESIA_TTS_MODEL   = "sonic-2"
	CARTESIA_API_VERSION = "2024-06-10"
	OPENAI_TTS_MODEL     = "gpt-4o-mini-tts"
	OPENAI_DEFAULT_VOICE = "sage"
)

// STYLE_INSTRUCTION steers instruction-following TTS models.
const STYLE_INSTRUCTION = `
You are a Korean technical interviewer at a software company.
Speak standard Korean at a steady, measured pace with a calm and professional tone.
Sound attentive and slightly formal, never cheerful or casual.
Pronounce English technical terms (API, Spring Boot, Redis) naturally, the way Korean engineers say them.
`
