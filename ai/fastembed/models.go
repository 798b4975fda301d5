package fastembed

// modelDimensions lists the output length of each supported model by its
// Hugging Face name and by fastembed's short name.
var modelDimensions = map[string]int{
	"sentence-transformers/all-MiniLM-L6-v2": 384,
	"fast-all-MiniLM-L6-v2":                  384,
	"BAAI/bge-small-en-v1.5":                 384,
	"fast-bge-small-en-v1.5":                 384,
	"BAAI/bge-small-en":                      384,
	"fast-bge-small-en":                      384,
	"BAAI/bge-base-en-v1.5":                  768,
	"fast-bge-base-en-v1.5":                  768,
	"BAAI/bge-base-en":                       768,
	"fast-bge-base-en":                       768,
}

// ModelDimension returns the vector length for a supported model name.
func ModelDimension(model string) (int, bool) {
	dim, ok := modelDimensions[model]
	return dim, ok
}

// InstallHint is printed when the local model cannot be loaded.
const InstallHint = "local embeddings need a cgo build and the ONNX Runtime shared library " +
	"(see https://onnxruntime.ai); set ONNX_PATH to libonnxruntime, " +
	"or configure embedding.kind=openai to use an HTTP embedding service"
