package trainer

import "fmt"

// Topics builds the MQTT topic scheme one federation's job and update traffic
// flows over.
type Topics struct {
	federationID string
}

func NewTopics(federationID string) *Topics {
	return &Topics{federationID: federationID}
}

func (t *Topics) BaseTopic() string {
	return fmt.Sprintf("fl/%s", t.federationID)
}

// JobTopic is where an endpoint listens for training jobs.
func (t *Topics) JobTopic(endpointID string) string {
	return fmt.Sprintf("%s/endpoints/%s/jobs", t.BaseTopic(), endpointID)
}

// UpdateTopic is where an endpoint publishes the update for one job.
func (t *Topics) UpdateTopic(endpointID, jobID string) string {
	return fmt.Sprintf("%s/endpoints/%s/updates/%s", t.BaseTopic(), endpointID, jobID)
}
