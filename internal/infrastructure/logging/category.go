package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Mongo           Category = "Mongo"
	RabbitMQ        Category = "RabbitMQ"
	Pipeline        Category = "Pipeline"
	Messaging       Category = "Messaging"
	WebSocket       Category = "WebSocket"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	ExternalService SubCategory = "ExternalService"

	// Pipeline
	Transcription SubCategory = "Transcription"
	Enrichment    SubCategory = "Enrichment"
	StatusChange  SubCategory = "StatusChange"

	// Messaging
	FanOut   SubCategory = "FanOut"
	Delivery SubCategory = "Delivery"
	Ack      SubCategory = "Ack"
	Replay   SubCategory = "Replay"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	UserID       ExtraKey = "UserId"
	EntryID      ExtraKey = "EntryId"
	MessageID    ExtraKey = "MessageId"
	Status       ExtraKey = "Status"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
