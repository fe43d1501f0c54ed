package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskTypeForTest(t *testing.T) {
	cases := map[TestType]TaskType{
		TestTypeReading:   TaskTypeReading,
		TestTypeWriting:   TaskTypeWriting,
		TestTypeListening: TaskTypeListening,
		TestTypeSpeaking:  TaskTypeSpeaking,
	}

	for testType, want := range cases {
		require.Equal(t, want, TaskTypeForTest(testType))
	}

	require.Equal(t, TaskTypeGeneral, TaskTypeForTest(TestType("grammar")))
	require.Equal(t, TaskTypeGeneral, TaskTypeForTest(TestType("")))
}

func TestTestCanBeAutoAssigned(t *testing.T) {
	classID := uint(7)

	require.False(t, Test{IsPublished: false, ClassID: &classID}.CanBeAutoAssigned())
	require.False(t, Test{IsPublished: true, ClassID: nil}.CanBeAutoAssigned())
	require.True(t, Test{IsPublished: true, ClassID: &classID}.CanBeAutoAssigned())
}

func TestTestTypeValid(t *testing.T) {
	require.True(t, TestTypeListening.Valid())
	require.False(t, TestType("coding").Valid())
}
