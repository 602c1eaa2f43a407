package telemetry

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Status é o quadro publicado a cada mudança de tick.
type Status struct {
	SessionID string
	Tick      int
	MaxTick   int
	Playing   bool
	Speed     float64
	Blocks    int
	Solid     int
	Chunks    int
}

// EncodeStatus serializa o status como google.protobuf.Struct.
func EncodeStatus(s Status) ([]byte, error) {
	msg, err := structpb.NewStruct(map[string]any{
		"session":  s.SessionID,
		"tick":     s.Tick,
		"max_tick": s.MaxTick,
		"playing":  s.Playing,
		"speed":    s.Speed,
		"blocks":   s.Blocks,
		"solid":    s.Solid,
		"chunks":   s.Chunks,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(msg)
}

// DecodeStatus lê um quadro produzido por EncodeStatus.
func DecodeStatus(data []byte) (Status, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return Status{}, fmt.Errorf("quadro de status inválido: %w", err)
	}
	f := msg.GetFields()
	num := func(k string) int { return int(f[k].GetNumberValue()) }
	return Status{
		SessionID: f["session"].GetStringValue(),
		Tick:      num("tick"),
		MaxTick:   num("max_tick"),
		Playing:   f["playing"].GetBoolValue(),
		Speed:     f["speed"].GetNumberValue(),
		Blocks:    num("blocks"),
		Solid:     num("solid"),
		Chunks:    num("chunks"),
	}, nil
}
