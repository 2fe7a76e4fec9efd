package project

import (
	"strings"
	"time"

	"github.com/workexp/workexp-api/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a portfolio entry shown next to the work history.
type Project struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title" validate:"required,max=200"`
	Description  string             `json:"description" bson:"description" validate:"required"`
	Technologies []string           `json:"technologies" bson:"technologies" validate:"dive,required"`
	Featured     bool               `json:"featured" bson:"featured"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (p *Project) Clone() *Project {
	c := *p
	if p.Technologies != nil {
		c.Technologies = append([]string(nil), p.Technologies...)
	}
	return &c
}

// Input is the create/update body; nil fields are left unchanged.
type Input struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Technologies *[]string `json:"technologies"`
	Featured     *bool     `json:"featured"`
}

// Apply merges in onto p.
func Apply(p *Project, in Input) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Technologies != nil {
		techs := make([]string, 0, len(*in.Technologies))
		for _, t := range *in.Technologies {
			techs = append(techs, strings.TrimSpace(t))
		}
		p.Technologies = techs
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
}

// NewValidator returns the validator used for projects.
func NewValidator() *validation.Validator {
	return validation.New()
}

// Filter narrows List; a nil Featured returns every project.
type Filter struct {
	Featured *bool
}
