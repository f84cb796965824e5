package solver

import (
	"errors"
	"fmt"
	"io"

	"github.com/stratalog-io/welldex/types"
)

// ErrStreamMismatch is returned when a control stream's trailer count
// disagrees with the header or the frames actually received.
var ErrStreamMismatch = errors.New("control stream mismatch")

// WriteControlStream frames a run's full control record set:
// header, one control frame per record, trailer.
func WriteControlStream(w io.Writer, meta *types.RunMeta, records []*types.WellControlRecord) error {
	enc := NewFrameEncoder(w)

	header := &HeaderFrame{
		Type:          HeaderType,
		RunID:         meta.RunID,
		Deck:          meta.DeckID,
		SchemaVersion: types.RecordSchemaVersion,
		Wells:         len(records),
	}
	if err := enc.WriteFrame(header); err != nil {
		return err
	}

	for _, record := range records {
		frame := &ControlFrame{Type: ControlType, Record: *record}
		if err := enc.WriteFrame(frame); err != nil {
			return err
		}
	}

	return enc.WriteFrame(&TrailerFrame{Type: TrailerType, Wells: len(records)})
}

// ReadControlStream reads a complete control stream and returns the
// header and control records. The stream must open with a header,
// close with a trailer, and the counts must agree.
func ReadControlStream(r io.Reader) (*HeaderFrame, []*types.WellControlRecord, error) {
	dec := NewFrameDecoder(r)

	payload, err := dec.ReadFrame()
	if err != nil {
		return nil, nil, err
	}
	first, err := DecodeFrame(payload)
	if err != nil {
		return nil, nil, err
	}
	header, ok := first.(*HeaderFrame)
	if !ok {
		return nil, nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "control stream must open with a header frame",
		}
	}

	var records []*types.WellControlRecord
	for {
		payload, err := dec.ReadFrame()
		if err == io.EOF {
			return nil, nil, fmt.Errorf("%w: stream ended without a trailer", ErrStreamMismatch)
		}
		if err != nil {
			return nil, nil, err
		}

		frame, err := DecodeFrame(payload)
		if err != nil {
			return nil, nil, err
		}

		switch f := frame.(type) {
		case *ControlFrame:
			record := f.Record
			records = append(records, &record)
		case *TrailerFrame:
			if f.Wells != len(records) || header.Wells != len(records) {
				return nil, nil, fmt.Errorf("%w: header %d, trailer %d, received %d",
					ErrStreamMismatch, header.Wells, f.Wells, len(records))
			}
			return header, records, nil
		default:
			return nil, nil, &FrameError{
				Kind: FrameErrorDecode,
				Msg:  "unexpected header frame mid-stream",
			}
		}
	}
}
