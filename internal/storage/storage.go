package storage

import "tokenfoundry/internal/model"

// Storage defines a sink for deployment records.
type Storage interface {
	PutDeployment(record model.DeploymentRecord) error
}
