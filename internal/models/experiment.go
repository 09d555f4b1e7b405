package models

import (
	"crypto/md5"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExperimentDoc es un experimento A/B entre dos algoritmos (colección
// "experiments"). Se asume a lo sumo uno activo a la vez; si hubiera más,
// gana el primero que devuelva Mongo.
type ExperimentDoc struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	AlgorithmA  string             `json:"algorithmA" bson:"algorithmA"`
	AlgorithmB  string             `json:"algorithmB" bson:"algorithmB"`
	// fracción de tráfico que va a algorithmB (0.5 = mitad y mitad)
	TrafficSplit float64   `json:"trafficSplit" bson:"trafficSplit"`
	StartDate    time.Time `json:"startDate" bson:"startDate"`
	EndDate      time.Time `json:"endDate" bson:"endDate"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// IsRunning indica si el experimento está corriendo en `now`.
func (e *ExperimentDoc) IsRunning(now time.Time) bool {
	return e.IsActive && !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// AlgorithmForUser asigna determinísticamente al usuario una variante.
// md5("{expId}_{userId}") % 100 / 100 < trafficSplit => B, si no A.
// El mismo usuario recibe siempre la misma variante durante el
// experimento; fuera de ventana se devuelve el control (A).
func (e *ExperimentDoc) AlgorithmForUser(userID int, now time.Time) string {
	if !e.IsRunning(now) {
		return e.AlgorithmA
	}

	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", e.ID.Hex(), userID)))
	// el módulo 100 se toma sobre el digest completo de 128 bits,
	// plegado byte a byte (Horner): truncar el digest cambia el bucket
	bucket := 0
	for _, b := range sum {
		bucket = (bucket*256 + int(b)) % 100
	}
	if float64(bucket)/100.0 < e.TrafficSplit {
		return e.AlgorithmB
	}
	return e.AlgorithmA
}
