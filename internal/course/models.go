package course

// Course is the root of the hierarchy. Modules holds full embedded Module
// copies, not references; the same modules also live in the modules collection.
type Course struct {
	ID          int      `json:"id" bson:"id"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Modules     []Module `json:"modules" bson:"modules"`
}

// Module exists embedded in Course.Modules and as a standalone record.
type Module struct {
	ID      int      `json:"id" bson:"id"`
	Title   string   `json:"title" bson:"title"`
	Lessons []Lesson `json:"lessons" bson:"lessons"`
}

// Lesson exists in up to three places: course → module, standalone module,
// and the lessons collection.
type Lesson struct {
	ID          int       `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Topics      []string  `json:"topics" bson:"topics"`
	Content     []Content `json:"content" bson:"content"`
}

// Content is an opaque lesson block tagged by kind.
type Content struct {
	Type ContentType `json:"type" bson:"type"`
	Data string      `json:"data" bson:"data"`
}

// Clone returns a deep copy so that embedded and standalone copies never share
// backing arrays.
func (l Lesson) Clone() Lesson {
	out := l
	if l.Topics != nil {
		out.Topics = append([]string{}, l.Topics...)
	}
	if l.Content != nil {
		out.Content = append([]Content{}, l.Content...)
	}
	return out
}

func (m Module) Clone() Module {
	out := m
	out.Lessons = cloneLessons(m.Lessons)
	return out
}

func (c Course) Clone() Course {
	out := c
	if c.Modules != nil {
		out.Modules = make([]Module, len(c.Modules))
		for i, m := range c.Modules {
			out.Modules[i] = m.Clone()
		}
	}
	return out
}

func cloneLessons(in []Lesson) []Lesson {
	if in == nil {
		return nil
	}
	out := make([]Lesson, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}
