package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
)

// TTL curto: o cache só absorve rajadas de consulta na mesma grade.
// Toda mutação de agenda invalida a chave do dia explicitamente.
const slotTTL = 2 * time.Minute

// SlotCache guarda a grade de horários livres de um profissional num dia,
// já computada, para a consulta pública de disponibilidade.
type SlotCache struct {
	client *redis.Client
}

func NewSlotCache(client *redis.Client) *SlotCache {
	return &SlotCache{client: client}
}

func slotKey(professionalID uint, date string, durationMin int) string {
	return fmt.Sprintf("slots:%d:%s:%d", professionalID, date, durationMin)
}

// Get retorna (slots, true) no hit. Erros de Redis contam como miss:
// a disponibilidade sempre pode ser recomputada do banco.
func (c *SlotCache) Get(
	ctx context.Context,
	professionalID uint,
	date string,
	durationMin int,
) ([]domain.TimeSlot, bool) {

	raw, err := c.client.Get(ctx, slotKey(professionalID, date, durationMin)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(
	ctx context.Context,
	professionalID uint,
	date string,
	durationMin int,
	slots []domain.TimeSlot,
) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	c.client.Set(ctx, slotKey(professionalID, date, durationMin), raw, slotTTL)
}

// InvalidateDay apaga todas as variações de duração cacheadas para o
// profissional no dia. Chamado após qualquer mutação de agenda.
func (c *SlotCache) InvalidateDay(
	ctx context.Context,
	professionalID uint,
	date string,
) error {
	pattern := fmt.Sprintf("slots:%d:%s:*", professionalID, date)

	iter := c.client.Scan(ctx, 0, pattern, 50).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
