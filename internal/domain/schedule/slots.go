package schedule

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps aplica o teste de intervalo meio-aberto: [start, end)
// sobrepõe [b.Start, b.End) sse start < b.End && b.Start < end.
func Overlaps(start, end time.Time, b Interval) bool {
	return start.Before(b.End) && b.Start.Before(end)
}

// ComputeSlots percorre a janela de atendimento em passos de step e
// devolve os inícios em que um atendimento de duração duration caberia
// sem sobrepor nenhuma ocupação existente.
//
// now corta candidatos no passado quando a data é hoje; para outras
// datas o chamador passa o zero value.
//
// Varredura linear O(slots × ocupações); as ocupações de um profissional
// num dia são poucas, limitadas pelo expediente e pela granularidade.
func ComputeSlots(windowStart, windowEnd time.Time, duration, step time.Duration, busy []Interval, now time.Time) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}
	// serviço maior que o expediente do dia
	if windowStart.Add(duration).After(windowEnd) {
		return nil
	}

	var slots []time.Time
	for cur := windowStart; !cur.Add(duration).After(windowEnd); cur = cur.Add(step) {
		if !now.IsZero() && cur.Before(now) {
			continue
		}

		end := cur.Add(duration)
		conflict := false
		for _, b := range busy {
			if Overlaps(cur, end, b) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, cur)
		}
	}
	return slots
}
