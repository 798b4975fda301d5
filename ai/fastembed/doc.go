// Package fastembed runs sentence-transformer embedding models locally
// through ONNX Runtime.
//
// The default model is sentence-transformers/all-MiniLM-L6-v2, which yields
// 384-dimensional vectors. Model files are downloaded into the configured
// cache directory on first use. Builds without cgo compile a stub whose
// NewProvider returns ai.ErrUnavailable; callers print InstallHint and stop.
package fastembed
