// Package schema holds the declarative topic/pipeline definitions the
// compiler resolves against, plus the catalog collaborator contract a
// storage adapter implements to serve them.
package schema

import "github.com/evalgo-labs/pipeflow/value"

// TopicKind tags how a topic's records are produced and consumed.
type TopicKind string

const (
	TopicKindSystem   TopicKind = "system"
	TopicKindBusiness TopicKind = "business"
	TopicKindSynonym  TopicKind = "synonym"
	TopicKindRaw      TopicKind = "raw"
)

// EncryptMethod names an at-rest encryption scheme applied to a factor's
// stored value; "" means no encryption.
type EncryptMethod string

const (
	EncryptNone EncryptMethod = ""
	EncryptAES  EncryptMethod = "aes"
)

// Factor is one named, typed slot in a topic record.
type Factor struct {
	ID      string        `json:"factorId"`
	Name    string        `json:"name"` // dotted path into the record
	Kind    value.Kind    `json:"kind"`
	Encrypt EncryptMethod `json:"encryptMethod,omitempty"`
	Default *value.Value  `json:"defaultValue,omitempty"`
	Flatten bool          `json:"flatten,omitempty"`
}

// Topic is a topic schema: the shape of records flowing on one topic.
type Topic struct {
	ID       string    `json:"topicId"`
	TenantID string    `json:"tenantId"`
	Code     string    `json:"code"` // stable lookup key, independent of ID
	Name     string    `json:"name"`
	Kind     TopicKind `json:"kind"`
	Factors  []Factor  `json:"factors"`
}

// FactorByID looks up one of the topic's factors by its stable id.
func (t *Topic) FactorByID(id string) (Factor, bool) {
	for _, f := range t.Factors {
		if f.ID == id {
			return f, true
		}
	}
	return Factor{}, false
}

// FactorByName looks up one of the topic's factors by its dotted name.
func (t *Topic) FactorByName(name string) (Factor, bool) {
	for _, f := range t.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return Factor{}, false
}

// SupportsTrigger reports whether a pipeline may be compiled with this
// topic as its trigger topic. It takes no trigger type: synonym and raw
// topics are refused for every type, including insert, which
// trigger.CheckTopicKind accepts on those kinds.
func (t *Topic) SupportsTrigger() bool {
	return t.Kind != TopicKindSynonym && t.Kind != TopicKindRaw
}
