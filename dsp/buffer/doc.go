// Package buffer provides the sample containers used across the stretcher:
// a reusable float64 Buffer with a sync.Pool backed Pool, a multi-channel Set
// with uniform-length validation, and a growable FIFO ring for streaming
// stages. DSP functions accept raw []float64 slices; these types only manage
// allocation, ownership and per-channel bookkeeping.
package buffer
