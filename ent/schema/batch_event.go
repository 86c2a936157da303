package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// BatchEvent records the final state of one question batch.
type BatchEvent struct {
	ent.Schema
}

func (BatchEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (BatchEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("test_set"),
		field.Int("batch_index").
			Comment("0-based position of the batch in the run"),
		field.Int("start_number").
			Comment("Question number of the batch's first slot"),
		field.String("question_types").
			Comment("JSON array of the slot types"),
		field.Int("attempts"),
		field.String("state").
			Comment("accepted or exhausted"),
		field.String("reason").
			Default("").
			Comment("Last rejection reason of an exhausted batch"),
	}
}
