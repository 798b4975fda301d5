package ai

// Kind selects the embedding backend.
type Kind string

const (
	// KindFastEmbed runs a local ONNX sentence-transformer model.
	KindFastEmbed Kind = "fastembed"

	// KindOpenAI calls an OpenAI-compatible embeddings endpoint.
	KindOpenAI Kind = "openai"
)

// DefaultModel is the sentence-transformer used when no model is configured.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

// DefaultDimension is the output length of DefaultModel.
const DefaultDimension = 384

// Kinds lists the supported embedding backends.
var Kinds = []Kind{
	KindFastEmbed,
	KindOpenAI,
}
