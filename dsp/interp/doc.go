// Package interp provides fractional-position interpolation.
//
// A [Kernel] estimates one point between samples, either linearly or with
// the 4-point cubic [Hermite4]. [Stream] walks a kernel across a block-wise
// signal at a variable step and serves as a cheap variable-ratio resampler.
package interp
