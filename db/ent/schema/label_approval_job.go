package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/db/ent/schema/utils"
)

// LabelApprovalJob is one label submission under review. The declared product info,
// the uploaded images and everything the analysis produced live in job_metadata.
type LabelApprovalJob struct{ ent.Schema }

func (LabelApprovalJob) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "label_approval_jobs"},
	}
}

func (LabelApprovalJob) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.String("brand_name").NotEmpty().MaxLen(255),
		field.String("product_class").NotEmpty().MaxLen(255),
		field.String("status").
			Default(string(constants.JobStatusPending)).
			Validate(utils.EnumValidator(constants.JobStatuses...)),
		field.JSON("job_metadata", json.RawMessage{}).
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.Time("created_at").Default(time.Now).Immutable(),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
		// audit
		field.String("created_by_entity"),
		field.String("created_by_entity_id"),
		field.String("created_by_entity_domain"),
		field.String("updated_by_entity"),
		field.String("updated_by_entity_id"),
		field.String("updated_by_entity_domain"),
	}
}

func (LabelApprovalJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "created_at"),
		index.Fields("brand_name"),
	}
}
