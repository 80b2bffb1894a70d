package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	ID          primitive.ObjectID
	IsAdmin     bool
	IsPublisher bool
}

// Is reports whether the actor and id name the same identity.
func (a Actor) Is(id primitive.ObjectID) bool {
	return a.ID == id
}
