// Package resample converts sample streams by a rational factor using a
// Kaiser-windowed polyphase FIR.
//
// The pitch shifter uses [NewForScale]: resampling by 1/scale and playing
// the result at the original rate multiplies every frequency by scale.
// Quality modes trade filter length for stopband rejection:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
//
// The filter is linear phase, so output lags input by Delay samples; Flush
// drains that tail at end of stream.
package resample
