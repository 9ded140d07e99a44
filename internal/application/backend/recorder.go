package backend

// Recorder recibe el desenlace de cada ejecución de Run (métricas).
// kind distingue familias de backends: "planner", "detector".
type Recorder interface {
	Record(kind string, meta Meta, err error)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, Meta, error) {}

// NopRecorder descarta todo.
var NopRecorder Recorder = nopRecorder{}
