package core

// StatusClass returns the badge classes for a run status or stage.
func StatusClass(status string) string {
	switch status {
	case "completed", "Finished", "success":
		return "bg-green-50 text-green-700 border border-green-200"
	case "cancelled", "Cancelled", "Cancelling", "warning":
		return "bg-amber-50 text-amber-700 border border-amber-200"
	case "failed", "error":
		return "bg-red-50 text-red-700 border border-red-200"
	default:
		return "bg-blue-50 text-blue-700 border border-blue-200"
	}
}

func isSelected(active, name string) string {
	if active == name {
		return "true"
	}
	return "false"
}

func navClass(active, name string) string {
	if active == name {
		return "bg-blue-50 text-blue-700 border-b-2 border-blue-600 font-medium"
	}
	return "text-slate-600 hover:text-slate-900"
}
