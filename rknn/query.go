package rknn

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LogModelInfo logs the SDK version and the tensor attributes of the loaded
// model
func (r *Runtime) LogModelInfo(log zerolog.Logger) error {

	ver, err := r.SDKVersion()

	if err != nil {
		return fmt.Errorf("error querying sdk version: %w", err)
	}

	log.Info().Str("driver", ver.DriverVersion).Str("api", ver.APIVersion).
		Uint32("inputs", r.ioNum.NumberInput).
		Uint32("outputs", r.ioNum.NumberOutput).
		Msg("RKNN runtime loaded")

	for _, attr := range r.inputAttrs {
		log.Info().Stringer("tensor", attr).Msg("Input tensor")
	}

	for _, attr := range r.outputAttrs {
		log.Info().Stringer("tensor", attr).Msg("Output tensor")
	}

	return nil
}
