package output

import (
	"encoding/xml"
	"fmt"
	"path/filepath"

	"github.com/goodbytes/linkdetect/internal/helpers"
)

// JUnitFormatter formats reports as JUnit XML for CI/CD integration.
// Every scanned file is a test case; files that failed to parse fail.
type JUnitFormatter struct{}

// junitTestSuites is the root element for JUnit XML.
type junitTestSuites struct {
	XMLName   xml.Name         `xml:"testsuites"`
	Name      string           `xml:"name,attr"`
	Tests     int              `xml:"tests,attr"`
	Failures  int              `xml:"failures,attr"`
	Errors    int              `xml:"errors,attr"`
	TestSuite []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Format implements Formatter.
func (*JUnitFormatter) Format(report *Report) ([]byte, error) {
	failed := make(map[string]string, len(report.Errors))
	for _, e := range report.Errors {
		failed[e.File] = e.Error
	}

	linkCount := make(map[string]int, len(report.Files))
	for _, l := range report.Links {
		linkCount[l.FilePath]++
	}

	// Group files by directory, one suite each.
	suites := junitTestSuites{Name: "linkdetect-extract"}
	suiteIndex := map[string]int{}

	for _, file := range report.Files {
		dir := filepath.ToSlash(filepath.Dir(file))
		idx, ok := suiteIndex[dir]
		if !ok {
			idx = len(suites.TestSuite)
			suiteIndex[dir] = idx
			suites.TestSuite = append(suites.TestSuite, junitTestSuite{Name: dir})
		}
		suite := &suites.TestSuite[idx]

		tc := junitTestCase{
			Name:      filepath.ToSlash(file),
			ClassName: "linkdetect." + dir,
			SystemOut: helpers.Pluralize(linkCount[file], "link"),
		}
		if msg, ok := failed[file]; ok {
			tc.Failure = &junitFailure{
				Message: truncateForXML(msg, 200),
				Type:    "parse",
				Content: fmt.Sprintf("File: %s\nError: %s\n", file, msg),
			}
			suite.Failures++
			suites.Failures++
		}

		suite.Tests++
		suites.Tests++
		suite.TestCases = append(suite.TestCases, tc)
	}

	// An empty run still needs a suite to read as a success.
	if len(suites.TestSuite) == 0 {
		suites.TestSuite = append(suites.TestSuite, junitTestSuite{Name: "all-files"})
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), data...), nil
}

// truncateForXML truncates a message attribute.
func truncateForXML(s string, maxLen int) string {
	return helpers.TruncateURL(s, maxLen)
}
