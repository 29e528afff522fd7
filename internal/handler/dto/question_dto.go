package dto

import "github.com/yourusername/exam-api/internal/service"

// CreateTopicRequest представляет запрос на создание темы
type CreateTopicRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// QuestionRequest - тело создания и редактирования вопроса
type QuestionRequest struct {
	TopicID       uint   `json:"topic_id" binding:"required"`
	Text          string `json:"text" binding:"required,max=1000"`
	OptionA       string `json:"option_a" binding:"required,max=500"`
	OptionB       string `json:"option_b" binding:"required,max=500"`
	OptionC       string `json:"option_c" binding:"required,max=500"`
	OptionD       string `json:"option_d" binding:"required,max=500"`
	CorrectAnswer string `json:"correct_answer" binding:"required"`
}

// ToInput преобразует запрос в формат сервиса
func (r QuestionRequest) ToInput() service.QuestionInput {
	return service.QuestionInput{
		TopicID:       r.TopicID,
		Text:          r.Text,
		OptionA:       r.OptionA,
		OptionB:       r.OptionB,
		OptionC:       r.OptionC,
		OptionD:       r.OptionD,
		CorrectAnswer: r.CorrectAnswer,
	}
}
