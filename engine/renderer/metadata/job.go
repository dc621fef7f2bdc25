package metadata

/** Invoked on a worker. Returns the result handed to OnComplete. */
type JobStart func(params interface{}) (interface{}, error)

/** Definition for completion of a job. */
type JobOnComplete func(result interface{})

/** Invoked on a worker when JobStart fails. */
type JobOnFailure func(params interface{}, err error)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Used in logs. */
	Name string
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams interface{}
	/** @brief A function to be invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief A function to be invoked when the job successfully completes. Optional. */
	OnComplete JobOnComplete
	/** @brief A function to be invoked when the job fails. Optional. */
	OnFailure JobOnFailure
}
