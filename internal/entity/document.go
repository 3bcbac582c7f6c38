package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// Document is the metadata kept for one stored attachment. FileName is the
// absolute download URL and Path the storage-relative location.
type Document struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	FileName string             `bson:"fileName" json:"fileName"`
	Path     string             `bson:"path" json:"path"`
}
