package services

import (
	"hash/fnv"

	"github.com/cppla/maeum/models"
)

// Quote is a line of encouragement shown on the home screen.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

var quotes = []Quote{
	{Text: "You don't have to control your thoughts. You just have to stop letting them control you.", Author: "Dan Millman"},
	{Text: "Almost everything will work again if you unplug it for a few minutes, including you.", Author: "Anne Lamott"},
	{Text: "What lies behind us and what lies before us are tiny matters compared to what lies within us.", Author: "Ralph Waldo Emerson"},
	{Text: "The greatest weapon against stress is our ability to choose one thought over another.", Author: "William James"},
	{Text: "Happiness is not something ready made. It comes from your own actions.", Author: "Dalai Lama"},
	{Text: "Nothing can bring you peace but yourself.", Author: "Ralph Waldo Emerson"},
	{Text: "Act as if what you do makes a difference. It does.", Author: "William James"},
	{Text: "Keep your face always toward the sunshine, and shadows will fall behind you.", Author: "Walt Whitman"},
}

// QuoteService picks the quote of the day.
type QuoteService struct {
	quotes []Quote
}

func NewQuoteService() *QuoteService {
	return &QuoteService{quotes: quotes}
}

// Today returns the same quote for every call on the same day.
func (s *QuoteService) Today(day models.Day) Quote {
	h := fnv.New32a()
	_, _ = h.Write([]byte(day))
	return s.quotes[int(h.Sum32()%uint32(len(s.quotes)))]
}
