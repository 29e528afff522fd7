package exammanager

import (
	"fmt"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// TopicDraw - запрошенное количество вопросов из пула одной темы
type TopicDraw struct {
	TopicID uint
	Count   int
	Pool    []uint
}

// SampleWithoutReplacement выбирает count различных элементов из pool.
// Перемешивает копию пула и берет префикс, исходный срез не меняется.
func SampleWithoutReplacement(r Shuffler, pool []uint, count int) ([]uint, error) {
	if count < 0 || count > len(pool) {
		return nil, fmt.Errorf("cannot draw %d of %d", count, len(pool))
	}
	shuffled := make([]uint, len(pool))
	copy(shuffled, pool)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count], nil
}

// ComposeOrder выполняет стратифицированную выборку: из каждой темы берется
// Count вопросов, затем общий список перемешивается еще раз, чтобы темы чередовались.
func ComposeOrder(r Shuffler, draws []TopicDraw) ([]uint, error) {
	var ordered []uint
	for _, d := range draws {
		picked, err := SampleWithoutReplacement(r, d.Pool, d.Count)
		if err != nil {
			return nil, fmt.Errorf("topic #%d: %w", d.TopicID, err)
		}
		ordered = append(ordered, picked...)
	}
	r.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	return ordered, nil
}

// AssignPositions строит канонический список вопросов экзамена с позициями 1..N
func AssignPositions(questionIDs []uint) []entity.ExamQuestion {
	result := make([]entity.ExamQuestion, len(questionIDs))
	for i, id := range questionIDs {
		result[i] = entity.ExamQuestion{QuestionID: id, Position: i + 1}
	}
	return result
}

// ShuffleCopy возвращает перемешанную копию среза для показа в сессии
func ShuffleCopy[T any](r Shuffler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
